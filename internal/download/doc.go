// Package download turns an album's tracks into files on disk.
//
// FileWriter downloads one task. It creates the destination exclusively,
// so an existing file is skipped without any request, and it removes the
// file again unless the download completed. Its result is an Outcome of
// one of five kinds: downloaded, skipped because the file exists, skipped
// because the host does not resolve, skipped because of an HTTP status,
// or fatal.
//
// Orchestrator runs tasks in waves of a fixed width. A wave starts only
// after every task of the previous wave settled, and a fatal outcome stops
// the waves after the one it occurred in:
//
//	writer := download.NewFileWriter(client, logger)
//	orchestrator, err := download.NewOrchestrator(writer, 5, logger)
//	if err != nil {
//	    return err
//	}
//	outcomes, err := orchestrator.Run(ctx, album.Tasks())
//
// Manager wires both into the full pipeline used by the commands: fetch
// and extract the album page, prepare the album directory, run the track
// waves, download the cover and apply the optional tagging and playlist
// steps.
package download
