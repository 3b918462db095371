// Package cli bundles offline helpers for operators: settlement previews can
// be computed from a JSON file without the server or the database.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/surtidor-erp/surtidor-erp/internal/settlement"
)

// PreviewCLI computes settlements from request files.
type PreviewCLI struct {
	engine *settlement.Engine
	now    func() time.Time
}

// NewPreviewCLI initialises the helper. A zero clock means wall time.
func NewPreviewCLI(now func() time.Time) *PreviewCLI {
	if now == nil {
		now = time.Now
	}
	return &PreviewCLI{
		engine: settlement.NewEngine(nil, settlement.EngineConfig{Now: now}),
		now:    now,
	}
}

// RunFile loads a preview request from path and writes the receipt to out.
func (c *PreviewCLI) RunFile(path string, out io.Writer) error {
	if c == nil {
		return errors.New("preview cli: not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.Run(data, out)
}

// Run computes a settlement from raw JSON and writes the receipt to out.
func (c *PreviewCLI) Run(data []byte, out io.Writer) error {
	var req settlement.PreviewRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("preview cli: parse request: %w", err)
	}
	if len(req.Documents) == 0 {
		return errors.New("preview cli: at least one document required")
	}

	st := settlement.DefaultSettings()
	st = req.Settings.ApplyTo(st)

	docs := make([]settlement.Document, 0, len(req.Documents))
	for _, in := range req.Documents {
		docs = append(docs, in.ToDocument())
	}
	values := make([]settlement.ValueItem, 0, len(req.Values))
	for _, in := range req.Values {
		values = append(values, in.ToValueItem())
	}

	opts := settlement.AdjustOptions{PaymentType: settlement.PaymentOpenAccount, ForceDiscount: req.ForceDiscount}
	if req.PaymentType != "" {
		opts.PaymentType = settlement.PaymentType(req.PaymentType)
	}

	res := c.engine.Recompute(docs, values, st, opts)
	_, err := io.WriteString(out, settlement.RenderReceipt(res, c.now()))
	return err
}
