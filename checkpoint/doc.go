// Package checkpoint persists hpolog.Snapshot values so a search can resume
// with the same config IDs.
//
// # Locations
//
// Load and Save accept three kinds of locations:
//
//   - a local path ending in .json, .yaml or .yml
//   - a pointer file ending in .pointer, whose content is another location
//   - a Google Cloud Storage URL, gs://bucket/object.json
//
// # Decoding
//
// Decoding is restricted to the snapshot shape: the document is validated
// against a JSON Schema before it is decoded, and the decoded snapshot must
// satisfy hpolog.Snapshot.Validate.
//
//	store := checkpoint.NewStore()
//	if err := store.Save(ctx, "run/state.yaml", printer.ExportState()); err != nil {
//	    return err
//	}
//	snap, err := store.Load(ctx, "run/latest.pointer")
//	if err != nil {
//	    return err
//	}
//	err = printer.RestoreState(snap)
package checkpoint
