// Package foodrag provides an in-process Go client for the food question
// answering pipeline: lexical retrieval over a food corpus (or web search)
// followed by an OpenAI-compatible chat completion.
//
// # Static corpus
//
//	client, _ := foodrag.New(ctx,
//	    foodrag.WithCompletion(os.Getenv("GROQ_API_KEY"), ""),
//	)
//	defer client.Close()
//	ans, _ := client.Ask(ctx, "What is a Japanese rice dish?")
//	fmt.Println(ans.Text)
//	for _, s := range ans.Sources {
//	    fmt.Println(s.Name, s.Region, s.Type)
//	}
//
// # Custom documents
//
//	client, _ := foodrag.New(ctx,
//	    foodrag.WithCorpus(
//	        foodrag.Document{ID: "pho", Text: "Pho is a Vietnamese noodle soup.", Region: "Vietnam", Type: "Soup"},
//	    ),
//	    foodrag.WithTopK(1),
//	)
//	passages, _ := client.Retrieve(ctx, "noodle soup", 0)
//
// # Web search
//
//	client, _ := foodrag.New(ctx,
//	    foodrag.WithWebSearch(apiKey, engineID),
//	    foodrag.WithCompletion(groqKey, ""),
//	)
//
// Answers can be cached in Redis or Valkey with WithRedis/WithValkey.
package foodrag
