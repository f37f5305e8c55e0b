// Package invsets prepares the per-continent work-item manifests that drive
// the downstream hydrology inversion pipeline.
//
// Given a satellite data collection and a continent-scoped hydrography
// reference database ("SWORD"), the pipeline enumerates which river reaches
// are observed in a temporal window, resolves the reach and node identifiers
// they contain, and partitions the observed reaches into inversion sets —
// small, hydrologically coherent groups of contiguous reaches admissible
// under an algorithm-specific rule set. See the setbuilder package for the
// core graph algorithm, and refdb, catalog, shapefile, cyclepass, and
// manifest for the input-preparation and output-writing collaborators.
package invsets
