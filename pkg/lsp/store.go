package lsp

import "sync"

// Document is an open text document as last reported by the client.
type Document struct {
	Text       string
	LanguageID string
}

// DocumentStore is a thread-safe store for open documents keyed by URI.
type DocumentStore struct {
	documents map[string]Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]Document),
	}
}

// Open stores a document for the given URI.
func (ds *DocumentStore) Open(uri string, doc Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = doc
}

// Update replaces the text of a document, keeping its language. An unknown
// URI is stored with an empty language.
func (ds *DocumentStore) Update(uri, text string) Document {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc := ds.documents[uri]
	doc.Text = text
	ds.documents[uri] = doc

	return doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Len is the number of open documents.
func (ds *DocumentStore) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.documents)
}
