package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialogAt(t *testing.T, target Step) *Dialog {
	t.Helper()
	d := NewDialog()
	path := map[Step][]Step{
		StepUpload:    {},
		StepPreview:   {StepPreview},
		StepAftercare: {StepPreview, StepAftercare},
		StepImporting: {StepPreview, StepAftercare, StepImporting},
		StepComplete:  {StepPreview, StepAftercare, StepImporting, StepComplete},
	}
	for _, step := range path[target] {
		require.NoError(t, d.To(step))
	}
	return d
}

func TestDialogTransitionTable(t *testing.T) {
	steps := []Step{StepUpload, StepPreview, StepAftercare, StepImporting, StepComplete}
	legal := map[Step]map[Step]bool{
		StepUpload:    {StepPreview: true},
		StepPreview:   {StepAftercare: true},
		StepAftercare: {StepImporting: true, StepPreview: true},
		StepImporting: {StepComplete: true},
		StepComplete:  {},
	}

	for _, from := range steps {
		for _, to := range steps {
			d := dialogAt(t, from)
			err := d.To(to)
			if legal[from][to] {
				assert.NoError(t, err, "%s -> %s should be legal", from, to)
				assert.Equal(t, to, d.Step())
			} else {
				assert.Error(t, err, "%s -> %s should be rejected", from, to)
				assert.Equal(t, from, d.Step(), "a rejected move must not change the step")
			}
		}
	}
}

func TestDialogBackOnlyFromAftercare(t *testing.T) {
	d := dialogAt(t, StepAftercare)
	require.NoError(t, d.Back())
	assert.Equal(t, StepPreview, d.Step())

	for _, from := range []Step{StepUpload, StepPreview, StepImporting, StepComplete} {
		d := dialogAt(t, from)
		assert.Error(t, d.Back(), "back from %s should be rejected", from)
	}
}

func TestDialogCompleteIsTerminal(t *testing.T) {
	d := dialogAt(t, StepComplete)

	for _, to := range []Step{StepUpload, StepPreview, StepAftercare, StepImporting} {
		assert.Error(t, d.To(to))
	}
	assert.Error(t, d.Back())
}
