package tree

import "sort"

// Cluster is one connected component of the family graph.
type Cluster struct {
	// Members holds the cluster's person IDs in sorted order.
	Members []string

	tree *Tree
}

// Len returns the number of persons in the cluster.
func (c *Cluster) Len() int {
	return len(c.Members)
}

// Contains reports whether the cluster holds the given person.
func (c *Cluster) Contains(id string) bool {
	i := sort.SearchStrings(c.Members, id)
	return i < len(c.Members) && c.Members[i] == id
}

// Representative returns the ID of the cluster's layout anchor: the
// member with the earliest birth year. Members without a birth year
// sort after those with one, and ties break toward the smallest ID.
func (c *Cluster) Representative() string {
	best := ""
	bestYear := 0
	for _, id := range c.Members {
		p, _ := c.tree.Person(id)
		year := p.Record.BirthYear
		if best == "" {
			best, bestYear = id, year
			continue
		}
		if olderThan(year, id, bestYear, best) {
			best, bestYear = id, year
		}
	}
	return best
}

// olderThan reports whether (year, id) sorts before (otherYear, otherID).
// A zero year means unknown and sorts last.
func olderThan(year int, id string, otherYear int, otherID string) bool {
	switch {
	case year != 0 && otherYear == 0:
		return true
	case year == 0 && otherYear != 0:
		return false
	case year != otherYear:
		return year < otherYear
	default:
		return id < otherID
	}
}

// Components partitions the graph into connected clusters using BFS
// over the undirected relationship adjacency. Every person lands in
// exactly one cluster; unrelated singletons form clusters of one.
//
// Seeds are taken in sorted-ID order, so the cluster list is
// deterministic for a given input.
func (t *Tree) Components() []*Cluster {
	visited := make(map[string]bool, len(t.persons))
	var clusters []*Cluster

	for _, seed := range t.ids {
		if visited[seed] {
			continue
		}

		var members []string
		queue := []string{seed}
		visited[seed] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			members = append(members, id)

			for _, next := range t.Neighbors(id) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}

		sort.Strings(members)
		clusters = append(clusters, &Cluster{Members: members, tree: t})
	}

	return clusters
}
