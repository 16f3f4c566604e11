package search

import (
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/fusion"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterKeywordSearch(ranking []fusion.Ranked)
	AfterSemanticSearch(ranking []fusion.Ranked)
	AfterFusion(ranking []fusion.Ranked)
	AfterArticleRetrieval(articles []*core.Article)
	KeywordAndSemanticHit(article *core.Article)
	KeywordHit(article *core.Article)
	SemanticHit(article *core.Article)
	Finish(results []*core.FusedResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterKeywordSearch(_ []fusion.Ranked)    {}
func (n *noopMonitor) AfterSemanticSearch(_ []fusion.Ranked)   {}
func (n *noopMonitor) AfterFusion(_ []fusion.Ranked)           {}
func (n *noopMonitor) AfterArticleRetrieval(_ []*core.Article) {}
func (n *noopMonitor) KeywordAndSemanticHit(_ *core.Article)   {}
func (n *noopMonitor) KeywordHit(_ *core.Article)              {}
func (n *noopMonitor) SemanticHit(_ *core.Article)             {}
func (n *noopMonitor) Finish(_ []*core.FusedResult)            {}
