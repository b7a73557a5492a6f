package transform

import (
	"persona-service/internal/models"
	"persona-service/internal/personaid"
)

// NormalizeGraph rewrites node and edge endpoints to normalized persona IDs.
func NormalizeGraph(g models.SimilarityGraph) models.SimilarityGraph {
	out := models.SimilarityGraph{
		Nodes: make([]models.GraphNode, len(g.Nodes)),
		Edges: make([]models.GraphEdge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		n.ID = models.FlexString(personaid.Normalize(n.ID.String()))
		out.Nodes[i] = n
	}
	for i, e := range g.Edges {
		e.Source = models.FlexString(personaid.Normalize(e.Source.String()))
		e.Target = models.FlexString(personaid.Normalize(e.Target.String()))
		out.Edges[i] = e
	}
	return out
}
