// Package tcpcache implements a listening socket that retains a cache
// of accepted client connections and multiplexes readiness across all
// of them with a single poll(2) call. PollOrAccept makes one timed poll
// pass; Poll and Accept block until a result is ready; PollCallback is
// the callback form of PollOrAccept. Poll and Accept have no callback
// form. A connection
// handed to the caller as ready is removed from the polled set until
// the caller returns it via ReturnConnection, which re-arms its POLLIN
// interest.
package tcpcache
