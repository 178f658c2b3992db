package mcpserver

// FormatContract describes the language file format that LLM consumers
// should follow when writing or importing language files.
const FormatContract = `# lngkit Language File Format

A language file is UTF-8 text named ` + "`<code>.lng`" + ` (e.g. ` + "`de_DE.lng`" + `, ` + "`pt_BR.lng`" + `).
It defines named blocks of text; blocks may reference each other.

## Settings line

The FIRST line is always a settings line:

` + "```" + `
!!! === $ $ #
` + "```" + `

Words: settings marker, block marker, reference start, reference end, comment marker.
A settings line has 1 word (only the settings marker) or 5+ words. 2-4 words is a
warning and only the first word is applied. Any later line starting with the
current settings marker changes the delimiters for the blocks declared after it.
Defaults: ` + "`!!! === $ $ ;`" + `. The examples below set ` + "`#`" + ` explicitly.

## Blocks

` + "```" + `
=== save save_button # optional comment
Save
` + "```" + `

- A block starts with the block marker followed by one or more names.
- Everything after the comment marker on that line is ignored.
- All following lines up to the next block or settings line are the content.
- Trailing whitespace of the content is trimmed; inner newlines are kept.
- Every name of one declaration gets the same content.
- Declaring a name twice overwrites the earlier block (warning).
- Lines before the first block are ignored.

## References

Inside content, ` + "`$name$`" + ` is replaced by the resolved content of block ` + "`name`" + `.
` + "`$name alias$`" + ` also binds ` + "`alias`" + ` to that value for the rest of the SAME block,
so later ` + "`$alias$`" + ` uses the cached value. Aliases never leak into other blocks.

- A referenced block is resolved with its OWN delimiters.
- References are single-line.
- A block referencing itself, directly or through other blocks, keeps the token literally.
- A reference to an unknown name is an ERROR and the token stays literal.

## Rules

1. Any error makes the whole file unusable for lookups: fix every error.
2. Warnings are allowed but should be fixed.
3. Keys are matched exactly after trimming surrounding whitespace.
4. Validate with the ` + "`check_lng`" + ` tool before writing.

## Example

` + "```" + `
!!! === $ $ #
=== app # product name
Volkswagen
=== welcome
Welcome to $app$!
=== about
$app a$ was founded in 1937. $a$ is based in Wolfsburg.
` + "```" + `

Resolves to ` + "`welcome = \"Welcome to Volkswagen!\"`" + ` and
` + "`about = \"Volkswagen was founded in 1937. Volkswagen is based in Wolfsburg.\"`" + `.
`
