package importer

import "fmt"

// Step is one stage of the import dialog
type Step string

const (
	StepUpload    Step = "upload"
	StepPreview   Step = "preview"
	StepAftercare Step = "aftercare"
	StepImporting Step = "importing"
	StepComplete  Step = "complete"
)

// transitions is the full set of legal dialog moves. The only backward edge
// is aftercare -> preview; a finished dialog cannot be reopened.
var transitions = map[Step][]Step{
	StepUpload:    {StepPreview},
	StepPreview:   {StepAftercare},
	StepAftercare: {StepImporting, StepPreview},
	StepImporting: {StepComplete},
	StepComplete:  {},
}

// Dialog is the import dialog's finite-state machine
type Dialog struct {
	step Step
}

func NewDialog() *Dialog {
	return &Dialog{step: StepUpload}
}

// Step returns the current stage
func (d *Dialog) Step() Step {
	return d.step
}

// To moves the dialog to the next stage, rejecting anything not in the
// transition table
func (d *Dialog) To(next Step) error {
	for _, allowed := range transitions[d.step] {
		if allowed == next {
			d.step = next
			return nil
		}
	}
	return fmt.Errorf("illegal import step transition %s -> %s", d.step, next)
}

// Back steps from the aftercare screen to the preview; no other stage may
// go backward
func (d *Dialog) Back() error {
	if d.step != StepAftercare {
		return fmt.Errorf("cannot go back from step %s", d.step)
	}
	d.step = StepPreview
	return nil
}
