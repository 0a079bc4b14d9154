package postgres

const (
	opDeleteMenuItem = "delete menu item"
)

// Menu items
const (
	queryInsertMenuItem = `
		INSERT INTO menu_items (name, price)
		VALUES ($1, $2)
		RETURNING id`

	querySelectMenuItemByID = `
		SELECT id, name, price
		FROM menu_items
		WHERE id = $1`

	querySelectMenuItemByName = `
		SELECT id, name, price
		FROM menu_items
		WHERE LOWER(name) = LOWER($1)`

	queryUpdateMenuItemPrice = `
		UPDATE menu_items
		SET price = $2
		WHERE id = $1`

	queryDeleteMenuItem = `DELETE FROM menu_items WHERE id = $1`

	queryCountMenuItemReferences = `SELECT COUNT(*) FROM order_details WHERE item_id = $1`

	querySelectMenuItems = `
		SELECT id, name, price
		FROM menu_items
		ORDER BY id`
)

// Tables
const (
	queryInsertTable = `
		INSERT INTO tables (table_number, status)
		VALUES ($1, $2)
		RETURNING id`

	querySelectTableByNumber = `
		SELECT id, table_number, status
		FROM tables
		WHERE table_number = $1`

	queryLockTableByNumber = querySelectTableByNumber + `
		FOR UPDATE`

	queryLockTableByID = `
		SELECT id, table_number, status
		FROM tables
		WHERE id = $1
		FOR UPDATE`

	queryUpdateTableStatus = `
		UPDATE tables
		SET status = $2
		WHERE id = $1`

	queryOccupyTable = `
		UPDATE tables
		SET status = 'occupied'
		WHERE id = $1 AND status = 'available'`

	queryDeleteTable = `DELETE FROM tables WHERE id = $1`

	querySelectTables = `
		SELECT id, table_number, status
		FROM tables
		ORDER BY table_number`
)

// Orders
const (
	queryInsertOrder = `
		INSERT INTO orders (table_id, order_time, status)
		VALUES ($1, $2, $3)
		RETURNING id`

	queryInsertOrderDetail = `
		INSERT INTO order_details (order_id, item_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`

	querySelectOrderByID = `
		SELECT o.id, COALESCE(o.table_id, 0), COALESCE(t.table_number, 0), o.order_time, o.status
		FROM orders o
		LEFT JOIN tables t ON t.id = o.table_id
		WHERE o.id = $1`

	queryLockOrderByID = `
		SELECT o.id, COALESCE(o.table_id, 0), COALESCE(t.table_number, 0), o.order_time, o.status
		FROM orders o
		LEFT JOIN tables t ON t.id = o.table_id
		WHERE o.id = $1
		FOR UPDATE OF o`

	queryUpdateOrderStatus = `
		UPDATE orders
		SET status = $2
		WHERE id = $1`

	queryCountActiveOrdersByTable = `
		SELECT COUNT(*)
		FROM orders
		WHERE table_id = $1 AND id <> $2 AND status <> 'paid'`

	querySelectActiveOrders = `
		SELECT o.id, COALESCE(o.table_id, 0), COALESCE(t.table_number, 0), o.order_time, o.status
		FROM orders o
		LEFT JOIN tables t ON t.id = o.table_id
		WHERE o.status <> 'paid'
		ORDER BY o.order_time, o.id`

	querySelectOrderLines = `
		SELECT m.id, m.name, m.price, d.quantity
		FROM order_details d
		JOIN menu_items m ON m.id = d.item_id
		WHERE d.order_id = $1
		ORDER BY d.id`

	queryInsertStatusLog = `
		INSERT INTO order_status_log (order_id, status, changed_at)
		VALUES ($1, $2, $3)`

	querySelectStatusLog = `
		SELECT id, order_id, status, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at, id`
)

// Reports
const (
	querySalesBetween = `
		SELECT
			COUNT(*) FILTER (WHERE o.status = 'paid'),
			COUNT(*) FILTER (WHERE o.status <> 'paid'),
			COALESCE((
				SELECT SUM(d.quantity * m.price)
				FROM orders po
				JOIN order_details d ON d.order_id = po.id
				JOIN menu_items m ON m.id = d.item_id
				WHERE po.status = 'paid' AND po.order_time >= $1 AND po.order_time < $2
			), 0)
		FROM orders o
		WHERE o.order_time >= $1 AND o.order_time < $2`
)
