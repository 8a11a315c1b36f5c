package server

import "github.com/f3rmion/tabconv/internal/dispatch"

// requestPage adapts one HTTP request to dispatch.Page. Outputs holds only
// the fields the controller wrote.
type requestPage struct {
	req     ConvertRequest
	outputs map[dispatch.Format]string
}

func newRequestPage(req ConvertRequest) *requestPage {
	return &requestPage{req: req, outputs: make(map[dispatch.Format]string)}
}

func (p *requestPage) InputText() string { return p.req.Input }

// SelectedRoundMode reports no selection when the request omits round_mode.
func (p *requestPage) SelectedRoundMode() (string, bool) {
	return p.req.RoundMode, p.req.RoundMode != ""
}

func (p *requestPage) DecimalsText() string { return p.req.Decimals }
func (p *requestPage) SigFigsText() string  { return p.req.SigFigs }

func (p *requestPage) SetOutput(f dispatch.Format, text string) {
	p.outputs[f] = text
}
