package genome

import "cristae/internal/model"

// Clone returns a structurally independent copy of a genome under a
// new ID. Parent and child share no slices, so a mutated child can
// never alias its parent's genes.
func Clone(g model.Genome, newID string) model.Genome {
	out := g
	out.ID = newID
	out.Nodes = append([]model.NodeGene(nil), g.Nodes...)
	out.Edges = append([]model.EdgeGene(nil), g.Edges...)
	return out
}
