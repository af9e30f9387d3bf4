// Package talentsearch is a progressive candidate search engine: every search
// yields an instant skill-match ranking, then a hybrid BM25 and semantic
// ranking, then a final ranking with explanations and a quality score.
//
// # In-process
//
//	client, _ := talentsearch.New(ctx)
//	defer client.Close()
//	_ = client.Index(ctx, "recruiter-1", candidates)
//
//	stream, _ := client.Search(ctx, talentsearch.SearchParams{
//	    Query:     "senior python developer with aws",
//	    UserScope: "recruiter-1",
//	})
//	for st := range stream.All() {
//	    fmt.Println(st.Stage, len(st.Matches), st.IsFinal)
//	}
//
// # Redis with semantic search and explanations
//
//	client, _ := talentsearch.New(ctx,
//	    talentsearch.WithRedis("localhost:6379", ""),
//	    talentsearch.WithOpenAI(apiKey, "", "text-embedding-3-small", 1536),
//	    talentsearch.WithEnhancement("gpt-4o-mini"),
//	)
package talentsearch
