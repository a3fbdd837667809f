// Package baseline persists the last canonical value successfully synced for
// each entry of a store pair.
//
// The baseline distinguishes "changed on one side" from "changed on both
// sides": an entry whose current value on one side still equals its baseline
// is unchanged there. Entries are keyed by a store-pair identifier (see
// [PairID]) and the canonical entry name, so pairs on different machines or
// profiles never share state.
//
// Two implementations are provided. [MemoryStore] keeps everything in
// process and is used by tests and dry runs. [FileStore] keeps a JSON file
// that is rewritten atomically on every mutation:
//
//	{
//	  "version": 1,
//	  "pairs": {
//	    "local/claude+opencode": {
//	      "github": {"entry": {...}, "synced_at": "2026-01-02T15:04:05Z"}
//	    }
//	  }
//	}
package baseline
