package store

// SQL query constants. All SQL lives here; PostgresStore methods
// reference these constants.

const (
	queryInsertCard = `
		INSERT INTO cards (
			image_url, sport, player, year, brand, set_name, card_number,
			graded_company, grade, serial_number, flags,
			estimated_price_cad, price_source, created_at
		) VALUES (
			@image_url, @sport, @player, @year, @brand, @set_name, @card_number,
			@graded_company, @grade, @serial_number, @flags,
			@estimated_price_cad, @price_source, now()
		)
		RETURNING id, created_at`

	queryGetCard = `
		SELECT id, image_url, sport, player, year, brand, set_name, card_number,
			graded_company, grade, serial_number, flags,
			estimated_price_cad, price_source, created_at
		FROM cards
		WHERE id = $1`

	queryListCards = `
		SELECT id, image_url, sport, player, year, brand, set_name, card_number,
			graded_company, grade, serial_number, flags,
			estimated_price_cad, price_source, created_at
		FROM cards
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	queryCountCards = `
		SELECT COUNT(*) FROM cards`

	queryCollectionValue = `
		SELECT COALESCE(SUM(estimated_price_cad), 0), COUNT(*) FROM cards`

	queryListImageURLs = `
		SELECT image_url FROM cards`
)
