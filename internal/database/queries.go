package database

// ListMenuEntriesSQL reads the orderable dishes in display order
const ListMenuEntriesSQL = `
	SELECT id, name, description, price, category, image
	FROM menu_items
	WHERE available
	ORDER BY position ASC, id ASC`
