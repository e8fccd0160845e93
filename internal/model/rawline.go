package model

// RawLine is one line of a log shard as handed to the extraction or
// validation path. The text is immutable and never persisted.
type RawLine struct {
	Number int    // 1-based line number within the shard
	Source string // shard identifier (usually the file path)
	Text   string // original log text
}
