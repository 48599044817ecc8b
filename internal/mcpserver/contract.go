package mcpserver

// RecordFormatContract describes the decision record layout that LLM
// consumers should follow when creating or editing records.
const RecordFormatContract = `# Decision Record Format Contract

Architecture decision records (ADRs) live in one directory of the
repository: the first existing of ` + "`adr/`, `docs/adr/`, `docs/adrs/`, `docs/decisions/`, `decisions/`" + `,
otherwise ` + "`adr/`" + `.

## File names

- Numbered: ` + "`NNNN-title-with-dashes.md`" + `, where NNNN is one more than the
  highest existing number and keeps the width already in use.
- Slug: ` + "`title-with-dashes.md`" + ` when the directory has no numbered records.
- Always create records with the ` + "`create_adr`" + ` tool; it allocates the name.

## Status

Every record carries exactly one status, in one of three conventions:

` + "```" + `markdown
---
status: proposed
date: 2025-01-15
decision-makers: Alice, Bob
---
` + "```" + `

` + "```" + `markdown
* Status: proposed
` + "```" + `

` + "```" + `markdown
## Status

proposed
` + "```" + `

Change a status with ` + "`set_adr_status`" + `. Only the status value is rewritten.
Common values: proposed, accepted, rejected, deprecated, superseded.

## Index

The directory index (` + "`README.md`" + ` or ` + "`index.md`" + `) lists records under an
` + "`## ADRs`" + ` heading, one per line:

` + "```" + `markdown
- [Use PostgreSQL](0002-use-postgresql.md) (accepted, 2025-01-15)
` + "```" + `

## Rules

1. One decision per record. A reader must be able to act on the record alone.
2. Titles are short imperative phrases ("Use PostgreSQL", not "Database").
3. Do not renumber or rename existing records.
4. Superseded records link to the record that replaces them.
5. Files are UTF-8 and end with a single trailing newline.
`
