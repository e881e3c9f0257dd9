// Package maven reads version listings from Maven-layout repositories.
//
// # Layout
//
// A coordinate "net.flintloader:punch" lives under
//
//	{base}/net/flintloader/punch/maven-metadata.xml
//
// and each published file of version V under
//
//	{base}/net/flintloader/punch/V/punch-V.{ext}
//
// # Ordering
//
// [ReadVersions] keeps every distinct <version> value in document order and
// then reverses the list, so the most recently declared version comes first.
//
// # Failures
//
// [Repository.FetchVersions] never fails: a transport or parse error is
// logged and yields an empty [Metadata]. Use [Repository.Fetch] when the
// error itself matters.
package maven
