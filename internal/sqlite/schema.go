package sqlite

// Schema DDL. Statements are idempotent so Attach can run them against an
// existing library.
const (
	createStyles = `CREATE TABLE IF NOT EXISTS styles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR NOT NULL,
    description VARCHAR
);`

	createStyleItems = `CREATE TABLE IF NOT EXISTS style_items (
    styleid INTEGER NOT NULL,
    num INTEGER NOT NULL,
    module INTEGER NOT NULL DEFAULT 0,
    operation VARCHAR(256) NOT NULL,
    op_params BLOB,
    enabled INTEGER NOT NULL DEFAULT 0,
    blendop_params BLOB,
    blendop_version INTEGER NOT NULL DEFAULT 0,
    multi_priority INTEGER NOT NULL DEFAULT 0,
    multi_name VARCHAR(256) NOT NULL DEFAULT '',
    FOREIGN KEY (styleid) REFERENCES styles(id) ON DELETE CASCADE
);`

	createImages = `CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filename VARCHAR NOT NULL,
    version INTEGER NOT NULL DEFAULT 0
);`

	createHistory = `CREATE TABLE IF NOT EXISTS history (
    imgid INTEGER NOT NULL,
    num INTEGER NOT NULL,
    module INTEGER NOT NULL DEFAULT 0,
    operation VARCHAR(256) NOT NULL,
    op_params BLOB,
    enabled INTEGER NOT NULL DEFAULT 0,
    blendop_params BLOB,
    blendop_version INTEGER NOT NULL DEFAULT 0,
    multi_priority INTEGER NOT NULL DEFAULT 0,
    multi_name VARCHAR(256) NOT NULL DEFAULT '',
    FOREIGN KEY (imgid) REFERENCES images(id) ON DELETE CASCADE
);`

	createTags = `CREATE TABLE IF NOT EXISTS tags (
    tag_id TEXT PRIMARY KEY,
    name VARCHAR NOT NULL UNIQUE
);`

	createTaggedImages = `CREATE TABLE IF NOT EXISTS tagged_images (
    imgid INTEGER NOT NULL,
    tag_id TEXT NOT NULL,
    PRIMARY KEY (imgid, tag_id),
    FOREIGN KEY (imgid) REFERENCES images(id) ON DELETE CASCADE,
    FOREIGN KEY (tag_id) REFERENCES tags(tag_id) ON DELETE CASCADE
);`

	createSelectedImages = `CREATE TABLE IF NOT EXISTS selected_images (
    imgid INTEGER PRIMARY KEY,
    FOREIGN KEY (imgid) REFERENCES images(id) ON DELETE CASCADE
);`
)

// Index DDL for the lookups the engine runs on every operation.
const (
	idxStylesName     = `CREATE INDEX IF NOT EXISTS idx_styles_name ON styles(name);`
	idxStyleItemsNum  = `CREATE INDEX IF NOT EXISTS idx_style_items_style ON style_items(styleid, num);`
	idxHistoryImgNum  = `CREATE INDEX IF NOT EXISTS idx_history_img ON history(imgid, num);`
	idxTaggedImagesTg = `CREATE INDEX IF NOT EXISTS idx_tagged_images_tag ON tagged_images(tag_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createStyles,
	createStyleItems,
	createImages,
	createHistory,
	createTags,
	createTaggedImages,
	createSelectedImages,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxStylesName,
	idxStyleItemsNum,
	idxHistoryImgNum,
	idxTaggedImagesTg,
}
