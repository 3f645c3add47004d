package mcpserver

// NoteFormatContract describes the Markdown notes the vault tools read and
// write.
const NoteFormatContract = `# Ansuz Note Format Contract

Notes are UTF-8 Markdown files ending in ` + "`" + `.md` + "`" + `. Paths are relative to the
vault root, use forward slashes, and never contain ` + "`" + `..` + "`" + `.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL – otherwise the first heading or file name
tags:                               # OPTIONAL – YAML list or comma separated string
  - tag-one
  - tag-two
---

Body text in standard Markdown.

- [ ] an open task
- [x] a completed task

Inline tags like #project-x count as tags too.
Use [[wikilinks]] to reference other notes (without .md extension).
Use [[target|alias]] for display text that differs from the target.
` + "```" + `

## Rules

1. **Front matter is optional.** When present, the ` + "`" + `---` + "`" + ` fence must be the
   first line of the file and the block must be valid YAML.
2. **Tags** are matched case-insensitively and without the leading ` + "`" + `#` + "`" + `.
3. **Wikilinks** target a note name (` + "`" + `[[note]]` + "`" + `) or a path
   (` + "`" + `[[folder/note]]` + "`" + `). A ` + "`" + `#heading` + "`" + ` suffix is ignored when resolving backlinks.
4. **Tasks** are lines of the form ` + "`" + `- [ ] text` + "`" + `. complete_task accepts the
   1-based line number or the task text. Line numbers change when a file is edited,
   so list tasks again before completing by line.
5. **update** keeps the existing front matter unless ` + "`" + `preserve_frontmatter` + "`" + ` is
   false. New content with its own front matter is merged key by key.
6. **The system folder** (` + "`" + `_system` + "`" + ` by default) holds ` + "`" + `preferences.md` + "`" + ` and
   is never listed or searched.

## Example

` + "```" + `markdown
---
title: Weekly standup 2025-01-20
tags:
  - meeting-notes
  - project-x
---

# Weekly standup 2025-01-20

Attendees: Alice, Bob.

## Action items

- [ ] [[alice]] to review the [[design-doc]]
- [ ] Bob to update [[project-x/roadmap|the roadmap]] #planning
` + "```" + `
`
