/*
Package scl declares scale configuration models for interactive plots.

A scale maps values from a data domain to a visual range. The mapping itself is computed by a
browser side renderer; this package only declares what a scale looks like. Each variant describes
one concrete scale kind with its domain and range class, the view and model tags used to route
state to the right renderer implementation, and an ordered list of synced fields.

Variants are registered in a catalog. The builtin catalog covers linear, log, date and ordinal
scales mapping to a numerical range, and a color scale family mapping to a color range. Catalogs
can be extended with custom variants, and each descriptor has a deterministic content hash so
host and view can detect drift before they start syncing state.

A scale is a configured instance of a variant. Construction applies the declared defaults, field
updates are validated against the field declaration and atomic, and the current state serializes
to a flat dict in declared field order. Optional fields are absent until set and can be cleared
with a null value. Read-only fields always serialize their fixed value.

Updated field keys are recorded on the scale until they are flushed as one change dict. The
package never talks to a renderer itself, a synchronization layer consumes flushed changes and
forwards them on whatever transport it chooses.

Scales are not safe for concurrent use. A single owner, usually a serving loop, applies all
updates and flushes.
*/
package scl
