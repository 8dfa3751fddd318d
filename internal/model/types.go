package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// NodeType is the functional role a membrane node plays during transport.
type NodeType string

const (
	NodeMembrane NodeType = "membrane"
	NodeETC      NodeType = "etc"
	NodeSynthase NodeType = "synthase"
)

// NodeGene is one heritable node descriptor on the membrane ring.
type NodeGene struct {
	Type  NodeType `json:"type"`
	SBias float64  `json:"s_bias"`
	Leak  float64  `json:"leak"`
}

// EdgeGene is a heritable chord between two non-adjacent ring nodes.
// From/To are ring indexes; edge identity is the unordered pair.
type EdgeGene struct {
	From      int     `json:"from"`
	To        int     `json:"to"`
	Weight    float64 `json:"weight"`
	Curvature float64 `json:"curvature"`
}

// FoldGene is one sinusoidal component of the membrane's radial folding.
type FoldGene struct {
	Freq  float64 `json:"freq"`
	Amp   float64 `json:"amp"`
	Phase float64 `json:"phase"`
}

// FoldCount is the fixed number of fold components every genome carries.
const FoldCount = 7

// Genome fully determines one organism's membrane shape and transport
// behavior. Chords may go structurally stale after a node-count shrink;
// the graph builder re-validates them at build time.
type Genome struct {
	VersionedRecord
	ID        string     `json:"id"`
	NodeCount int        `json:"node_count"`
	Nodes     []NodeGene `json:"nodes"`
	Edges     []EdgeGene `json:"edges"`

	RadiusX         float64             `json:"radius_x"`
	RadiusY         float64             `json:"radius_y"`
	PocketAmp       float64             `json:"pocket_amp"`
	PocketFreq      float64             `json:"pocket_freq"`
	PocketPhase     float64             `json:"pocket_phase"`
	AngleJitter     float64             `json:"angle_jitter"`
	AngleJitterFreq float64             `json:"angle_jitter_freq"`
	AngleJitterPh   float64             `json:"angle_jitter_phase"`
	Folds           [FoldCount]FoldGene `json:"folds"`
	Thickness       float64             `json:"thickness"`
	Porosity        float64             `json:"porosity"`
	ResonanceThresh float64             `json:"resonance_threshold"`
	CouplingStr     float64             `json:"coupling_strength"`
	AlignmentBias   float64             `json:"alignment_bias"`
	AlignmentVar    float64             `json:"alignment_variance"`
	EdgeWeight      float64             `json:"edge_weight"`
}

// GraphNode is a positioned node of a built membrane graph.
type GraphNode struct {
	ID   int      `json:"id"`
	Type NodeType `json:"type"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	S    float64  `json:"s"`
	Leak float64  `json:"leak"`
}

// GraphEdge is a realized edge of a built membrane graph. Ring marks
// the mandatory cycle edges; non-ring edges are genome chords that were
// valid at build time.
type GraphEdge struct {
	From      int     `json:"from"`
	To        int     `json:"to"`
	Weight    float64 `json:"weight"`
	Curvature float64 `json:"curvature"`
	Ring      bool    `json:"ring"`
}

// MembraneGraph is derived from a genome at a requested scale. It is
// rebuilt for every evaluation and every render and never mutated.
type MembraneGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Evaluation is the transport simulator's output for one genome.
type Evaluation struct {
	Fitness        float64 `json:"fitness"`
	Delivered      float64 `json:"delivered"`
	Leaked         float64 `json:"leaked"`
	Coherence      float64 `json:"coherence"`
	FoldComplexity float64 `json:"fold_complexity"`
	NodeCount      int     `json:"node_count"`
	ChordCount     int     `json:"chord_count"`
	Perimeter      float64 `json:"perimeter"`
}

// EvaluatedOrganism pairs a genome with its evaluation for one
// generation. Immutable once produced; consumed for ranking and display.
type EvaluatedOrganism struct {
	Genome     Genome     `json:"genome"`
	Evaluation Evaluation `json:"evaluation"`
}

// PopulationSnapshot is one population's ranked state after a
// generation, persisted per transport mode.
type PopulationSnapshot struct {
	VersionedRecord
	ID         string              `json:"id"`
	Mode       string              `json:"mode"`
	Generation int                 `json:"generation"`
	Organisms  []EvaluatedOrganism `json:"organisms"`
}

// TopOrganismRecord is a ranked entry of a run's final best organisms.
type TopOrganismRecord struct {
	Rank    int        `json:"rank"`
	Fitness float64    `json:"fitness"`
	Genome  Genome     `json:"genome"`
	Metrics Evaluation `json:"metrics"`
}

// RunSummary tracks the best observed fitness for a run across both
// transport modes.
type RunSummary struct {
	VersionedRecord
	RunID         string  `json:"run_id"`
	Generations   int     `json:"generations"`
	BestClassical float64 `json:"best_classical"`
	BestQuantum   float64 `json:"best_quantum"`
}
