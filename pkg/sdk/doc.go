// Package lexdex embeds the lexdex article ranker and admission gate in a Go
// program, without the HTTP server or any external store.
//
//	client, _ := lexdex.New(ctx,
//	    lexdex.WithArticles(articles),
//	    lexdex.WithPolicyTable(responses),
//	)
//	answer, _ := client.Ask(ctx, "What is the minimum wage?", nil)
//	matches, _ := client.Search(ctx, "overtime pay", 5)
package lexdex
