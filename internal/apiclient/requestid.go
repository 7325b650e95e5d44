package apiclient

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// RequestIDs generates X-Request-ID values: snowflake ids from one node,
// ksuid when the node cannot be created.
type RequestIDs struct {
	once sync.Once
	node *snowflake.Node
	nid  int64
}

func NewRequestIDs(nodeID int64) *RequestIDs {
	return &RequestIDs{nid: nodeID}
}

func (g *RequestIDs) Next() string {
	g.once.Do(func() {
		node, err := snowflake.NewNode(g.nid)
		if err == nil {
			g.node = node
		}
	})
	if g.node == nil {
		return ksuid.New().String()
	}
	return g.node.Generate().String()
}
