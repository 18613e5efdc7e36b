package mcpserver

// ManifestFormat documents the YAML inventory manifest accepted by the
// import_assets tool and the watched inventory directory.
const ManifestFormat = `# Inventory Manifest Format

A manifest is a UTF-8 YAML document with a single top-level ` + "`assets`" + ` list.

` + "```" + `yaml
assets:
  - hostname: PC-001          # REQUIRED, unique
    serial: SN-12345          # OPTIONAL, unique when present
    model: ThinkPad T14       # OPTIONAL
    location: Paris           # OPTIONAL
    status: active            # OPTIONAL, active | inactive (default active)
    purchased_at: "2024-05-01" # OPTIONAL, YYYY-MM-DD
` + "```" + `

## Rules

1. An entry updates the existing asset with the same **serial**. Entries
   without a serial match on **hostname** instead. Anything else is created.
2. Every listed field is written; omitted optional fields are cleared.
3. Unknown keys are rejected, the whole manifest fails to parse.
4. Entries that fail validation are reported and skipped; the others are
   still imported.
5. Removing an entry or a manifest never deletes assets.
6. In the inventory directory, files must end in ` + "`.yaml`" + ` or ` + "`.yml`" + `.
   Hidden files are ignored.
`
