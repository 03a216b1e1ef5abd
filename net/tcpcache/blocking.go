package tcpcache

import "context"

const pollLoopTimeoutMs = 200

// Poll blocks until at least one cached connection (not counting new
// accepts) is ready, or ctx is done, looping PollOrAccept with a short
// timeout so cancellation is observed promptly. A connection accepted
// along the way is not returned; it stays in the cache, armed for POLLIN.
func (c *Cache) Poll(ctx context.Context) (Connection, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Connection{}, err
		}
		ready, err := c.PollOrAccept(pollLoopTimeoutMs)
		if err != nil {
			return Connection{}, err
		}
		for _, conn := range ready {
			if !conn.Fresh {
				return conn, nil
			}
		}
	}
}

// Accept blocks until a new inbound connection is accepted, ignoring
// readiness events on already-cached connections in the meantime.
func (c *Cache) Accept(ctx context.Context) (Connection, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Connection{}, err
		}
		ready, err := c.PollOrAccept(pollLoopTimeoutMs)
		if err != nil {
			return Connection{}, err
		}
		for _, conn := range ready {
			if !conn.Fresh {
				// Not a fresh accept: let it back into rotation and keep
				// waiting for a genuine new connection.
				c.ReturnConnection(conn.FD)
				continue
			}
			return conn, nil
		}
	}
}

// PollCallback is the callback form of PollOrAccept: cb is invoked once
// per ready connection from a single poll pass, and the loop continues
// until ctx is done.
func (c *Cache) PollCallback(ctx context.Context, cb func(Connection)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ready, err := c.PollOrAccept(pollLoopTimeoutMs)
		if err != nil {
			return err
		}
		for _, conn := range ready {
			cb(conn)
		}
	}
}
