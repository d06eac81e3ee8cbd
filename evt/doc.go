/*
Package evt provides plain event sourcing for synced record state.

Records, scale configurations foremost, change through generic events. There are three
generic commands:

   '+' to create a new record
   '-' to discard a record
   '*' to modify a record

Each event has a topic, key and command string and an optional argument dict. The topic refers
to the record kind, for scales the variant key, and the key to the record id as string. The
argument dict holds the created state or the changed fields.

Events are published to one central ledger that assigns a revision and with that an order to
all events. A revision is a timestamp with millisecond granularity, usually the arrival time,
but never before the latest revision already in the ledger. The ledger can replay the event
sequence for any signature, and sequences can be merged into a single action that represents
the current state, which keeps late joining subscribers cheap.

Subscribers watch topics, optionally narrowed to record ids, and receive buffered updates
with all events they accept. The subscriber bookkeeping is transport agnostic and works with
any hub connection.
*/
package evt
