package simplecase

// Directory is a file-system directory. Its children are every file row
// under it: file-system entries as well as derived content.
type Directory struct {
	fsContent
}

func newDirectory(store *Case, rec *ObjectRecord) *Directory {
	d := &Directory{}
	d.abstractContent = abstractContent{id: rec.ID, parentID: rec.ParentID, name: rec.File.Name, store: store}
	d.attrs = rec.File.FileAttributes
	return d
}

func (d *Directory) Accept(v ItemVisitor) error {
	return v.VisitDirectory(d)
}

func (d *Directory) AcceptContent(v ContentVisitor) error {
	return v.VisitDirectory(d)
}

func (d *Directory) Describe(preserveState bool) string {
	return d.fsContent.describe(preserveState) + "Directory [\t]\t"
}

func (d *Directory) String() string {
	return d.Describe(false)
}
