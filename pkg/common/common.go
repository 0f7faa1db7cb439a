package common

import "strings"

// Shape is a vis-network node shape.
type Shape string

const (
	ShapeHexagon  Shape = "hexagon"
	ShapeTriangle Shape = "triangle"
	ShapeDot      Shape = "dot"
	ShapeSquare   Shape = "square"
)

// Colors used by the connections viewer.
const (
	ColorOrange        = "orange"
	ColorGreen         = "green"
	ColorGrey          = "grey"
	ColorRelatedEntity = "#026bc3"
	ColorDefaultEdge   = "#000000"
)

// Sizes of the nodes that carry one.
const (
	SizeRelatedEntity = 16
	SizeContextScope  = 14
)

// NodeColor is the vis-network color object of a node.
type NodeColor struct {
	Background string `json:"background"`
}

// GraphNode is a render-ready node. Four kinds occur: relationship types
// (hexagon), the root entity (triangle), related entities (dot) and context
// scopes (square).
type GraphNode struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Shape Shape     `json:"shape"`
	Color NodeColor `json:"color"`
	Size  int       `json:"size,omitempty"`
}

// GraphEdge is a render-ready edge. The ordered pair (From, To) is its
// identity; ID is derived from it.
type GraphEdge struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Color  string `json:"color"`
	Dashes *bool  `json:"dashes,omitempty"`
}

var edgeKeyEscaper = strings.NewReplacer(`\`, `\\`, ">", `\>`)

// EdgeKey returns the identity of the edge from -> to. Backslashes and ">"
// inside either end are escaped, so distinct pairs never share a key.
func EdgeKey(from, to string) string {
	return edgeKeyEscaper.Replace(from) + "->" + edgeKeyEscaper.Replace(to)
}

// NewEdge builds an edge without a dashes setting.
func NewEdge(from, to, color string) GraphEdge {
	return GraphEdge{
		ID:    EdgeKey(from, to),
		From:  from,
		To:    to,
		Color: color,
	}
}

// NewDashedEdge builds an edge with an explicit dashes setting.
func NewDashedEdge(from, to, color string, dashes bool) GraphEdge {
	e := NewEdge(from, to, color)
	e.Dashes = &dashes
	return e
}

// Key returns the edge identity.
func (e GraphEdge) Key() string {
	return EdgeKey(e.From, e.To)
}

// RenderOptions is handed to vis-network unchanged.
type RenderOptions struct {
	Layout      LayoutOptions      `json:"layout"`
	Edges       EdgeOptions        `json:"edges"`
	Interaction InteractionOptions `json:"interaction"`
}

type LayoutOptions struct {
	Hierarchical bool `json:"hierarchical"`
}

type EdgeOptions struct {
	Color string `json:"color"`
}

type InteractionOptions struct {
	NavigationButtons bool `json:"navigationButtons"`
	Hover             bool `json:"hover"`
}

// DefaultRenderOptions returns the options the connections viewer renders with.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Layout: LayoutOptions{Hierarchical: false},
		Edges:  EdgeOptions{Color: ColorDefaultEdge},
		Interaction: InteractionOptions{
			NavigationButtons: true,
			Hover:             false,
		},
	}
}

// Graph is the connections viewer payload: two uniquely keyed collections
// plus render options. Message is set when there is nothing (or only part of
// the graph) to show.
type Graph struct {
	Nodes   []GraphNode   `json:"nodes"`
	Edges   []GraphEdge   `json:"edges"`
	Options RenderOptions `json:"options"`
	Message string        `json:"message,omitempty"`
}

// NewEmptyGraph returns a graph with no nodes or edges and the given message.
func NewEmptyGraph(message string) *Graph {
	return &Graph{
		Nodes:   []GraphNode{},
		Edges:   []GraphEdge{},
		Options: DefaultRenderOptions(),
		Message: message,
	}
}

// GeoChartOptions is handed to the geo chart unchanged.
type GeoChartOptions struct {
	DefaultColor string `json:"defaultColor"`
}

// GeoChart is the geography viewer payload. Rows is the two-column table
// header ["Country"] followed by one row per country name.
type GeoChart struct {
	Loaded  bool            `json:"loaded"`
	Rows    [][]string      `json:"rows"`
	Options GeoChartOptions `json:"options"`
	Message string          `json:"message,omitempty"`
}

// GeoChartHeader is the first row of every geo chart table.
var GeoChartHeader = []string{"Country"}
