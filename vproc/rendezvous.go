package vproc

// Rendezvous is the pair of one-shot gates that alternates control between
// the driving goroutine and a node's worker goroutine.
//
// toWorker is posted by the driver once the receive buffer is written;
// toDriver is posted by the worker once the send buffer is written. Each gate
// holds at most one pending signal. The channel operations give the
// happens-before edges that make the unlocked node buffers safe.
type Rendezvous struct {
	toWorker chan struct{}
	toDriver chan struct{}
}

// NewRendezvous returns a Rendezvous with both gates closed.
func NewRendezvous() *Rendezvous {
	return &Rendezvous{
		toWorker: make(chan struct{}, 1),
		toDriver: make(chan struct{}, 1),
	}
}

// Resume wakes the worker and blocks until it hands control back.
// Called only from the driving side.
func (r *Rendezvous) Resume() {
	r.toWorker <- struct{}{}
	<-r.toDriver
}

// Wait blocks the worker until the driver resumes it.
func (r *Rendezvous) Wait() {
	<-r.toWorker
}

// Yield returns control to the driver without waiting to be resumed.
func (r *Rendezvous) Yield() {
	r.toDriver <- struct{}{}
}

// Exchange hands control to the driver and blocks until resumed again.
// Called only from the worker side.
func (r *Rendezvous) Exchange() {
	r.Yield()
	r.Wait()
}
