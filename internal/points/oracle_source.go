package points

import (
	"context"

	"sbos/internal/oracle"
)

// GraphSource adapts an oracle graph to Source.
type GraphSource struct {
	Graph *oracle.Graph
}

func (g GraphSource) Labels(ctx context.Context) ([]Labeled, error) {
	ls, err := g.Graph.Labels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Labeled, len(ls))
	for i, l := range ls {
		out[i] = Labeled{ID: l.ID, Label: l.Label}
	}
	return out, nil
}

func (g GraphSource) ClassOf(ctx context.Context, id string) (string, bool) {
	return g.Graph.ClassOf(ctx, id)
}
