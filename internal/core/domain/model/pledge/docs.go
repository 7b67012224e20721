// Package pledge models a supporter's monetary commitment toward a project.
//
// Pledges are written by the fundraising side of the marketplace; here they
// are read-only and used to split a cancellation refund across supporters.
package pledge
