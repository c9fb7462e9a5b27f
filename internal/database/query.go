package database

// aggregateColumns is the projection shared by every aggregate read. The order
// must match scanAggregateRow.
const aggregateColumns = `p.id, p.title, p.description, p.address, p.city, p.district,
	p.price, p.area, p.bedrooms, p.bathrooms, p.type_id, p.status_id,
	p.created_at, p.updated_at, p.is_deleted,
	pi.id, pi.property_id, pi.url, pi.alt_text, pi.sort_order, pi.created_at`

const aggregateFrom = ` FROM properties p LEFT JOIN property_images pi ON pi.property_id = p.id`

// aggregateOrder: newest first, images in display order.
const aggregateOrder = ` ORDER BY p.created_at DESC, p.id DESC, pi.sort_order ASC, pi.id ASC`

// selectAggregates builds the single-round-trip read for the given filter.
func selectAggregates(f *Filter) (string, []interface{}) {
	return "SELECT " + aggregateColumns + aggregateFrom + f.Where() + aggregateOrder, f.Args()
}

// countLive builds the existence query for the given filter.
func countLive(f *Filter) (string, []interface{}) {
	return "SELECT COUNT(1) FROM properties p" + f.Where(), f.Args()
}

// distinctCities lists the cities of properties matching f, alphabetically.
func distinctCities(f *Filter) (string, []interface{}) {
	return "SELECT DISTINCT p.city FROM properties p" + f.Where() + " ORDER BY p.city", f.Args()
}
