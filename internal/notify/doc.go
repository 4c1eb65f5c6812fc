// Package notify closes out the pipeline by announcing a processed call.
// Delivery is best effort: a notification failure never blocks completion.
package notify
