package tap

// writeConsole writes the block to the selected standard stream in one call. Write failures are
// dropped on purpose: there is no remaining channel to report them through.
func (tap *Tap) writeConsole(stream ConsoleStream, block []byte) {
	writer := tap.stderr
	if stream == ConsoleStdout {
		writer = tap.stdout
	}
	_, _ = writer.Write(block)
	tap.metrics.writtenBlocksCons.Inc()
	tap.metrics.writtenBytesCons.Add(uint64(len(block)))
}
