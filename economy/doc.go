// Package economy implements the chat economy: the ledger of users and
// commands and the operations that move cool points, street cred, mana and
// command ownership between users.
//
// Ownership lives only on the command record (permitted_users). A user's owned
// commands are derived by scanning commands, so the two sides cannot drift.
//
// Every ledger mutation is a single read-modify-write of one document,
// serialized per entity by an in-process keyed mutex. Operations that touch
// several records (steal, give, props) apply their writes in sequence with no
// rollback; a store failure half way leaves the earlier writes in place.
//
// Operations never return economic failures as errors. They report them as a
// Result with a typed Outcome and the chat lines to say. The error return is
// reserved for store failures.
package economy
