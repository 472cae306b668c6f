// Package popchoice provides an in-process Go client for the PopChoice movie
// recommendation pipeline.
//
// A query is three free-text answers: a favorite movie and why, whether the
// caller wants something new or a classic, and whether they want something fun
// or serious. The client summarizes the answers, embeds the summary, retrieves
// similar passages from the movie catalog and asks a chat model for one
// recommendation grounded in those passages.
//
//	client, err := popchoice.New(ctx,
//	    popchoice.WithSupabase(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_API_KEY")),
//	    popchoice.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	rec, err := client.Recommend(ctx,
//	    "Inception, loved the twist ending", "something new", "serious")
//
// When nothing in the catalog is similar enough, Recommend returns the fixed
// no-match message with Outcome OutcomeNoMatch. When the final generation
// fails after matches were found, it returns the fixed fallback message with
// Outcome OutcomeFallback instead of an error.
package popchoice
