package config

const (
	// MaxWorkspaceNameLength is the maximum length for workspace names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxWorkspaceNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as workspace names for consistency.
	MaxFolderNameLength = 255

	// MaxNoteTitleLength is the maximum length for note titles.
	MaxNoteTitleLength = 255

	// MaxNoteContentLength caps note bodies at 1MB of text. Larger payloads
	// indicate misuse of the notes API (attachments belong elsewhere).
	MaxNoteContentLength = 1 << 20

	// MaxCommentLength is the maximum length for comment text.
	MaxCommentLength = 10000

	// MaxFolderDepth bounds the ancestor walk during folder role
	// resolution. The parent relation is expected to be acyclic; this is a
	// defensive cap so corrupt data surfaces as an error instead of
	// unbounded recursion.
	MaxFolderDepth = 100
)
