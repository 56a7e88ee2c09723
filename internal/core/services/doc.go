// Package services implements the driving port interfaces.
//
// QueryRouter orchestrates the chat path: semantic-cache lookup,
// retrieval augmentation, generation, and asynchronous cache
// population. IngestionService runs the document pipeline from fetch
// through chunking and embedding to the vector index.
//
// Services talk to the outside world only through driven ports.
package services
