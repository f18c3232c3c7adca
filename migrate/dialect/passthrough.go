package dialect

import "github.com/satishbabariya/sqlecho/migrate/splitter"

// PassThroughTranslator is used when the scripts are already written in the
// target grammar.
type PassThroughTranslator struct{}

// NewPassThrough creates a pass-through translator
func NewPassThrough() Translator {
	return &PassThroughTranslator{}
}

func (t *PassThroughTranslator) Name() string { return PassThrough }

// Translate returns the statement unchanged.
func (t *PassThroughTranslator) Translate(stmt splitter.Statement) []string {
	if stmt.Text == "" {
		return nil
	}
	return []string{stmt.Text}
}
