// Package dag holds the dependency graph used to validate fixture
// registrations. Nodes are fixture names; an edge from A to B means B depends
// on A. The graph is built once, checked for cycles and topologically sorted;
// it is never consulted while fixtures are being resolved.
package dag
