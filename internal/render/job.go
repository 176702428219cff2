package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/barcoded/internal/request"
)

// Kind selects the symbol family of a Job.
type Kind string

const (
	Kind1D Kind = "1d"
	Kind2D Kind = "2d"
)

// Job is a request together with its family, as used by the WebSocket
// preview and by batch files.
type Job struct {
	Kind    Kind            `json:"kind"`
	Request json.RawMessage `json:"request"`
}

// RenderJob decodes and renders a job.
func (r *Renderer) RenderJob(ctx context.Context, job Job) (*Result, error) {
	switch job.Kind {
	case Kind1D:
		req, err := request.DecodeLinear(bytes.NewReader(job.Request))
		if err != nil {
			return nil, structural(err)
		}
		return r.Render1D(ctx, req)
	case Kind2D:
		req, err := request.DecodeTwoD(bytes.NewReader(job.Request))
		if err != nil {
			return nil, structural(err)
		}
		return r.Render2D(ctx, req)
	}
	return nil, structural(fmt.Errorf("unknown kind %q (want %q or %q)", job.Kind, Kind1D, Kind2D))
}
