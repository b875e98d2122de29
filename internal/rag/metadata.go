package rag

// Metadata carries document-level attributes through ingestion. Well-known
// fields are typed; anything else goes in Extra. Chunk-level keys
// (chunk_index, text_length) are derived during ingestion and never set
// here.
type Metadata struct {
	DocumentID   string
	DocumentType string
	Source       string
	Title        string
	Jurisdiction string
	UploadedBy   string
	Extra        map[string]string
}

// Well-known metadata keys as stored on index entries.
const (
	metaDocumentID   = "document_id"
	metaDocumentType = "document_type"
	metaSource       = "source"
	metaTitle        = "title"
	metaJurisdiction = "jurisdiction"
	metaUploadedBy   = "uploaded_by"
	metaChunkIndex   = "chunk_index"
	metaTextLength   = "text_length"
	metaCreatedAt    = "created_at"
)

// ToMap flattens the metadata into the string map stored alongside each
// index entry. Extra keys never override the well-known fields.
func (m *Metadata) ToMap() map[string]string {
	out := make(map[string]string, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	set := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	set(metaDocumentID, m.DocumentID)
	set(metaDocumentType, m.DocumentType)
	set(metaSource, m.Source)
	set(metaTitle, m.Title)
	set(metaJurisdiction, m.Jurisdiction)
	set(metaUploadedBy, m.UploadedBy)
	return out
}
