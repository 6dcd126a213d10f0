package peernet

// ConnectionResult is the outcome of one connection establishment
// attempt: either an established peer connection or a failure carrying
// a human-readable reason and the root cause.
type ConnectionResult struct {
	conn   PeerConnection
	reason string
	err    error
}

// Success wraps an established connection.
func Success(conn PeerConnection) ConnectionResult {
	return ConnectionResult{conn: conn}
}

// Failure records why establishment did not produce a connection.
func Failure(reason string, cause error) ConnectionResult {
	return ConnectionResult{reason: reason, err: cause}
}

// Established reports whether the attempt produced a connection.
func (r ConnectionResult) Established() bool {
	return r.conn != nil
}

// Connection returns the established connection, or nil on failure.
func (r ConnectionResult) Connection() PeerConnection {
	return r.conn
}

// Reason returns the failure reason, empty on success.
func (r ConnectionResult) Reason() string {
	return r.reason
}

// Err returns the failure cause, nil on success.
func (r ConnectionResult) Err() error {
	return r.err
}
