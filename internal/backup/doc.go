// Package backup copies store configuration files aside before mcpsync
// writes them.
//
// Each backup is a timestamped directory holding the copied files and a
// manifest.json with their SHA256 hashes:
//
//	<DataHome>/mcpsync/backups/
//	└── {store}/
//	    └── {timestamp}[-n]/
//	        ├── manifest.json
//	        └── {copied files...}
//
// [Manager.Backup] prunes to the retention count after every backup.
// [Session] takes at most one backup per store per run, which is what an
// apply wants: one copy of the file as it was before the first write.
package backup
