package remote

import (
	"context"

	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/provider"
)

// Wire methods spoken by capability servers.
const (
	MethodHover      = "overlay/hover"
	MethodSignatures = "overlay/signatures"
)

type wirePosition struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

func toWirePosition(p host.Position) wirePosition {
	return wirePosition{Row: p.Row, Column: p.Column}
}

func (r wireRange) toRange() host.Range {
	return host.Range{
		Start: host.Position{Row: r.Start.Row, Column: r.Start.Column},
		End:   host.Position{Row: r.End.Row, Column: r.End.Column},
	}
}

type hoverParams struct {
	EditorID     string       `json:"editorId"`
	GrammarScope string       `json:"grammarScope"`
	Position     wirePosition `json:"position"`
}

type hoverPayload struct {
	Range *wireRange `json:"range,omitempty"`
	Kind  string     `json:"kind"`
	Value string     `json:"value"`
}

// HoverProvider resolves hover content through a remote capability server.
type HoverProvider struct {
	meta   provider.Info
	client *Client
}

// NewHoverProvider creates a remote-backed hover provider.
func NewHoverProvider(meta provider.Info, client *Client) *HoverProvider {
	return &HoverProvider{meta: meta, client: client}
}

// Info implements provider.HoverProvider.
func (p *HoverProvider) Info() provider.Info { return p.meta }

// Hover implements provider.HoverProvider.
func (p *HoverProvider) Hover(ctx context.Context, ed host.Editor, pos host.Position) (*provider.HoverResult, error) {
	params := hoverParams{
		EditorID:     ed.ID(),
		GrammarScope: ed.GrammarScope(),
		Position:     toWirePosition(pos),
	}

	var payload *hoverPayload
	if err := p.client.Call(ctx, MethodHover, params, &payload); err != nil {
		return nil, err
	}
	if payload == nil || payload.Value == "" {
		return nil, nil
	}

	res := &provider.HoverResult{
		Kind:  provider.MarkupKind(payload.Kind),
		Value: payload.Value,
	}
	if res.Kind != provider.PlainText {
		res.Kind = provider.Markdown
	}
	if payload.Range != nil {
		rng := payload.Range.toRange()
		res.Range = &rng
	}
	return res, nil
}

type wireTrigger struct {
	Kind        string `json:"kind"`
	Character   string `json:"character,omitempty"`
	IsRetrigger bool   `json:"isRetrigger"`
}

type signatureParams struct {
	EditorID     string       `json:"editorId"`
	GrammarScope string       `json:"grammarScope"`
	Position     wirePosition `json:"position"`
	Trigger      wireTrigger  `json:"trigger"`
}

type wireParameter struct {
	Label         string `json:"label,omitempty"`
	Offsets       []int  `json:"offsets,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

type wireSignature struct {
	Label         string          `json:"label"`
	Documentation string          `json:"documentation,omitempty"`
	Parameters    []wireParameter `json:"parameters,omitempty"`
}

type signaturePayload struct {
	Signatures      []wireSignature `json:"signatures"`
	ActiveSignature int             `json:"activeSignature"`
	ActiveParameter int             `json:"activeParameter"`
}

// SignatureProvider resolves signature help through a remote capability
// server.
type SignatureProvider struct {
	meta       provider.Info
	triggers   string
	retriggers string
	client     *Client
}

// NewSignatureProvider creates a remote-backed signature provider with the
// given trigger character sets.
func NewSignatureProvider(meta provider.Info, triggers, retriggers string, client *Client) *SignatureProvider {
	return &SignatureProvider{
		meta:       meta,
		triggers:   triggers,
		retriggers: retriggers,
		client:     client,
	}
}

// Info implements provider.SignatureProvider.
func (p *SignatureProvider) Info() provider.Info { return p.meta }

// TriggerCharacters implements provider.SignatureProvider.
func (p *SignatureProvider) TriggerCharacters() string { return p.triggers }

// RetriggerCharacters implements provider.SignatureProvider.
func (p *SignatureProvider) RetriggerCharacters() string { return p.retriggers }

// Signatures implements provider.SignatureProvider.
func (p *SignatureProvider) Signatures(ctx context.Context, ed host.Editor, pos host.Position, trig provider.TriggerContext) (*provider.SignatureResult, error) {
	params := signatureParams{
		EditorID:     ed.ID(),
		GrammarScope: ed.GrammarScope(),
		Position:     toWirePosition(pos),
		Trigger: wireTrigger{
			Kind:        trig.Kind.String(),
			Character:   trig.Character,
			IsRetrigger: trig.IsRetrigger,
		},
	}

	var payload *signaturePayload
	if err := p.client.Call(ctx, MethodSignatures, params, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	res := &provider.SignatureResult{
		Signatures:      make([]provider.SignatureInfo, 0, len(payload.Signatures)),
		ActiveSignature: payload.ActiveSignature,
		ActiveParameter: payload.ActiveParameter,
	}
	for _, ws := range payload.Signatures {
		sig := provider.SignatureInfo{
			Label:         ws.Label,
			Documentation: ws.Documentation,
			Parameters:    make([]provider.ParameterInfo, 0, len(ws.Parameters)),
		}
		for _, wp := range ws.Parameters {
			info := provider.ParameterInfo{Documentation: wp.Documentation}
			if len(wp.Offsets) == 2 {
				info.Label = provider.OffsetLabel(wp.Offsets[0], wp.Offsets[1])
			} else {
				info.Label = provider.StringLabel(wp.Label)
			}
			sig.Parameters = append(sig.Parameters, info)
		}
		res.Signatures = append(res.Signatures, sig)
	}
	return res, nil
}

var _ provider.HoverProvider = (*HoverProvider)(nil)
var _ provider.SignatureProvider = (*SignatureProvider)(nil)
