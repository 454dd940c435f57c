//go:build !unix

package adapter

func isInterrupted(error) bool { return false }

func isTemporaryAccept(error) bool { return false }

func isConnReset(error) bool { return false }
