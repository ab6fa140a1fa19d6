// Package todo defines the task record and reads, validates, and writes the
// task data file.
//
// The data file (tasks.json by default) has the following shape:
//
//	{
//	  "schema_version": 1,
//	  "next_id": 3,
//	  "last_updated": "2026-10-18T09:00:00Z",
//	  "tasks": [
//	    {
//	      "id": 1,
//	      "description": "Buy milk",
//	      "category": "Personal",
//	      "priority": "low",
//	      "completed": false,
//	      "created_at": "2026-10-18T08:59:00Z",
//	      "due_date": "2026-10-20"
//	    }
//	  ]
//	}
//
// # Validation
//
// Files are checked in two passes:
//
// 1. JSON Schema validation against the schema embedded in this package, or
// against an external schema file when one is configured. If the external
// schema cannot be read or compiled, a warning is recorded and the embedded
// schema is used instead.
//
// 2. Minimal structural checks on the decoded tasks (positive unique ids,
// non-empty descriptions, known priorities, creation timestamps).
//
// # Priority Values
//
//   - "high"
//   - "medium"
//   - "low"
//
// # File Format
//
// When writing data files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Write to a temporary file in the same directory, then rename over the
//     target, so readers never observe a partially written file
package todo
