// Package knowledge answers vendor questions from a vector knowledge base.
//
// A question is embedded, matched against the documents of one vendor
// (match_documents_by_vendor_name, threshold 0.83, top 8) and the matched
// text is optionally condensed by a language model. Each stage sits behind
// a small interface:
//
//   - Embedder: HuggingFaceEmbedder (gte-small) or GeminiEmbedder
//   - Searcher: SupabaseSearcher (PostgREST RPC) or PostgresSearcher (sqlx)
//   - Extractor: GeminiExtractor
//
// The embedder must match the model the stored documents were embedded
// with.
package knowledge
