// Package app provides the application-shell pieces of the engine that
// sit between a host event loop and the game: a rendezvous for resources
// that finish loading asynchronously (the GPU device, assets, the window)
// and a tracker for keyboard and mouse state fed by host events.
package app
