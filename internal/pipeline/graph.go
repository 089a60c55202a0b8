package pipeline

import (
	"fmt"

	"bondtrading/pkg/exception"
)

const (
	NodeMarketData    = "MarketData"
	NodePricing       = "Pricing"
	NodeAlgoExecution = "AlgoExecution"
	NodeExecution     = "Execution"
	NodeAlgoStreaming = "AlgoStreaming"
	NodeStreaming     = "Streaming"
	NodeTradeBooking  = "TradeBooking"
	NodePosition      = "Position"
	NodeRisk          = "Risk"
	NodeInquiry       = "Inquiry"
	NodeGUI           = "GUI"

	NodeHistoryExecutions = "History/executions"
	NodeHistoryPositions  = "History/positions"
	NodeHistoryRisk       = "History/risk"
	NodeHistoryStreaming  = "History/streaming"
	NodeHistoryInquiries  = "History/allinquiries"
	NodeHistoryGUI        = "History/gui"
)

// Edge is a registered listener: events published by From reach To.
type Edge struct {
	From string
	To   string
	// Deferred edges deliver through the queue after the current dispatch.
	Deferred bool
}

// Graph records the services and listener edges of a pipeline in
// registration order.
type Graph struct {
	nodes []string
	index map[string]int
	edges []Edge
}

func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

func (g *Graph) addNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// Connect records an edge, adding unknown nodes.
func (g *Graph) Connect(from, to string, deferred bool) {
	g.addNode(from)
	g.addNode(to)
	g.edges = append(g.edges, Edge{From: from, To: to, Deferred: deferred})
}

func (g *Graph) Nodes() []string { return append([]string(nil), g.nodes...) }

func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Downstream lists the direct targets of a node in registration order.
func (g *Graph) Downstream(node string) []string {
	var out []string
	for _, e := range g.edges {
		if e.From == node {
			out = append(out, e.To)
		}
	}
	return out
}

// Validate rejects a service listening to itself synchronously, which would
// re-enter its own dispatch.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if e.From == e.To && !e.Deferred {
			return fmt.Errorf("%w: %s listens to itself synchronously", exception.ErrInvalidState, e.From)
		}
	}
	return nil
}

// Path returns the shortest chain of nodes an event travels from one node to
// another, or nil when unreachable.
func (g *Graph) Path(from, to string) []string {
	if _, ok := g.index[from]; !ok {
		return nil
	}
	if from == to {
		return []string{from}
	}
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Downstream(cur) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				path := []string{to}
				for n := cur; n != ""; n = prev[n] {
					path = append(path, n)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}
