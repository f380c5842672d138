package mcpserver

// FileFormat describes the notes persistence file so that LLM consumers
// can reason about what save_note and delete_note change on disk.
const FileFormat = `# SimpleNotes File Format

All notes live in one UTF-8 JSON file (by default ~/simplenotes.json).

## Structure

` + "```" + `json
{
    "Groceries": "milk, eggs",
    "Ideas": "line one\nline two"
}
` + "```" + `

## Rules

1. The file is a single JSON object. Keys are note titles, values are the
   note bodies as plain text. Nothing else is stored.
2. **Titles are unique** and never have leading or trailing whitespace.
   Saving a title that already exists overwrites its body in place.
3. **Order is insertion order.** New titles are appended; overwriting a
   title keeps its position; deleting removes it.
4. The whole file is rewritten after every save or delete, with four-space
   indentation and non-ASCII characters written as-is. An empty store is
   written as ` + "`{}`" + `.
5. A missing or malformed file is treated as an empty store, and the next
   save replaces it.
6. Bodies are plain text. Markdown or other markup is not interpreted.

## Export

` + "`export_note`" + ` writes one note body, unchanged, to a ` + "`.txt`" + ` file under the
configured export directory. The default file name is ` + "`{title}.txt`" + `.
`
