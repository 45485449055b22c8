// Package teleperson is a client for the Teleperson CRM API.
//
// Every call chain starts with a login for the user it acts on; the
// returned Session carries the access token for the calls that follow
// and is not cached between chains. The vendor lounge is paged and
// fetched in parallel batches.
package teleperson
