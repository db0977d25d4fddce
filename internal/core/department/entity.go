package department

// Department は部署エンティティです。社員とは部署名で結び付きます。
type Department struct {
	ID   string
	Name string
}
