// Package semcache provides a caching and batching layer for vector-search
// pipelines.
//
// Semcache sits between a chat-style application and its embedding provider
// plus vector-search backend. It answers repeated queries from memory,
// short-circuits conversational filler before it reaches the network, batches
// provider calls, and fans searches out across agents concurrently.
//
// # Quick Start
//
//	ctx := context.Background()
//	sc, _ := semcache.New[Document](provider, backend)
//
//	resp, _ := sc.Search(ctx, "agent-1", "What properties are available?", 10)
//	switch resp.Source {
//	case semcache.SourceFilter:
//	    fmt.Println(resp.Answer) // canned reply, no search ran
//	default:
//	    for _, doc := range resp.Results {
//	        fmt.Println(doc)
//	    }
//	}
//
// # Layers
//
// Each Search call walks the layers in order and stops at the first one that
// can answer:
//
//	// 1. CLASSIFIER — "thanks", "ok", "hello" get a canned reply.
//	// 2. RESULT CACHE — ranked lists keyed by (agent, query), LRU+TTL.
//	// 3. REMOTE STORE — optional shared store (S3/MinIO/DynamoDB) for
//	//    cross-process coherence.
//	// 4. EMBEDDING CACHE — reuse the query vector, search the backend.
//	// 5. PROVIDER — embed fresh, search, populate the caches on the way out.
//
// # Invalidation
//
// Result entries are scoped to one agent's corpus. When that corpus changes,
// drop the agent's entries and nothing else:
//
//	sc.InvalidateAgent(ctx, "agent-1")
//
// # Multi-Agent Search
//
// SearchMany runs tasks concurrently and degrades per task: a failed or
// timed-out task yields an empty list while the rest of the batch completes.
//
//	lists := sc.SearchMany(ctx, []parallel.Task{
//	    {AgentID: "agent-1", Query: "pricing", TopK: 5},
//	    {AgentID: "agent-2", Query: "pricing", TopK: 5},
//	})
//
// # Key Features
//
//   - LRU+TTL caches for embeddings and ranked results
//   - Filler classification with a configurable allow-list
//   - Order-preserving batched embedding calls
//   - Per-agent bulk invalidation backed by a posting index
//   - Optional shared result store (S3/MinIO/DynamoDB) with pluggable
//     codec and compression
//   - Structured logging, pluggable metrics, shared rate/concurrency budgets
package semcache
