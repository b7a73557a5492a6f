package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"persona-service/internal/models"
)

func TestNormalizeGraph(t *testing.T) {
	in := models.SimilarityGraph{
		Nodes: []models.GraphNode{{ID: "C-3", Label: "Engineer"}, {ID: "R1"}},
		Edges: []models.GraphEdge{{Source: "C-3", Target: "R1", Weight: 0.5}},
	}

	got := NormalizeGraph(in)

	assert.Equal(t, []models.GraphNode{{ID: "C003", Label: "Engineer"}, {ID: "R001"}}, got.Nodes)
	assert.Equal(t, []models.GraphEdge{{Source: "C003", Target: "R001", Weight: 0.5}}, got.Edges)
	assert.Equal(t, models.FlexString("C-3"), in.Nodes[0].ID)
}

func TestNormalizeGraphEmpty(t *testing.T) {
	got := NormalizeGraph(models.SimilarityGraph{})
	assert.NotNil(t, got.Nodes)
	assert.NotNil(t, got.Edges)
}
