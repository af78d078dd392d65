// Package views holds the two live views, Roster and Profile.
//
// A view instance is mounted once and unmounted once. While mounted it keeps
// its rendered state in sync with the status record store by the same rule
// every time: read, subscribe to changes, re-read on every change
// notification. No notification payload is ever applied directly.
//
// Each instance runs a single event loop goroutine that owns all of its state.
// Store calls run on their own goroutines and post their results back to the
// loop; a result is applied only if the view is still mounted and the
// generation it was issued under is still current. The change subscription is
// a [changefeed.Subscription] handle that is released on unmount, on route
// change, and whenever it arrives after the view has moved on.
package views
