package prefs

// Template is written when the system folder exists without a
// preferences note.
const Template = `---
# Date and time formats use strftime directives.
date_format: "%Y-%m-%d"
time_format: "%H:%M"

# Named folders used when a note is created without an explicit location.
# Paths are relative to the vault root.
default_folders: {}
#   daily: Journal/Daily
#   meetings: Work/Meetings

response_style:
  # concise, balanced, or detailed
  verbosity: balanced
  bullet_points: true
  timestamps: false
---

# Preferences

Everything below the front matter is passed to the assistant as context.
Describe your projects, naming conventions, or anything else it should
keep in mind when working with this vault.
`
