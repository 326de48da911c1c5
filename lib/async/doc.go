// Package async holds the state machines behind the site's asynchronous
// sections.
//
// There are two controllers and one composition type:
//
//   - FetchController drives a single remote read (a search query turned into
//     a list of DisplayItems) through Loading, Success and Failure.
//   - SubmitController drives a single remote write (a newsletter
//     subscription) through Idle, Submitting, Submitted and Failure, gated by
//     a validation Policy.
//   - Composition decides when a section's controller is constructed. Eager
//     sections are built up front; the rest stay NotRequested until the
//     presentation layer asks for them.
//
// Controllers own their state exclusively. Remote calls run on a Scheduler
// and report back into the controller that issued them; once a controller
// is destroyed, late completions are dropped.
//
//	src := pexels.New(apiKey)
//	ctrl := async.NewFetchController(src)
//	ctrl.Start(async.RemoteQuery{Keyword: "ai generated art", PageSize: 80})
//
//	switch st := ctrl.State(); st.Phase {
//	case async.FetchLoading:
//	    // render skeleton
//	case async.FetchSuccess:
//	    // render st.Items
//	case async.FetchFailure:
//	    // render st.Message with a retry button
//	}
package async
